package strategies

import "github.com/cpsit/tycore/internal/typath"

// NewDefaultRegistry builds a typath.Registry with every built-in layout
// strategy registered. Unlike the dynamic plugin loader this module's
// strategy registry is descended from, a PathResolver's strategy set is
// fixed per process: a TYPO3 installation's layout family does not change
// at runtime, so there is no case for loading strategies from .so files.
func NewDefaultRegistry() *typath.Registry {
	r := typath.NewRegistry()
	r.Register(NewComposerLayout())
	r.Register(NewLegacyLayout())
	r.Register(NewDockerLayout())
	return r
}
