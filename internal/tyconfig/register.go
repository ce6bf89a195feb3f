package tyconfig

// NewDefaultRegistry builds a Registry with every built-in format
// registered, PHP array literals first (the most specific dialect TYPO3
// configuration uses), then tabular, then tree.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPHPArrayFormat())
	r.Register(NewTabularFormat())
	r.Register(NewTreeFormat())
	return r
}
