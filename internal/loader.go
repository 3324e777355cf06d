package internal

// Loader lazily declares classes by name. An interpreter consults its Loader
// when a class name is needed but not yet declared, as when isa names a
// class that has not been loaded.
type Loader interface {
	// LoadClass declares the class with the given fully qualified name in i.
	// It returns nil without declaring anything if it has no such class.
	LoadClass(i *Interp, name string) error
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(i *Interp, name string) error

// LoadClass calls f(i, name).
func (f LoaderFunc) LoadClass(i *Interp, name string) error {
	return f(i, name)
}

// Loaders consults each loader in order until one declares the class.
type Loaders []Loader

// LoadClass implements Loader.
func (l Loaders) LoadClass(i *Interp, name string) error {
	for _, ld := range l {
		if err := ld.LoadClass(i, name); err != nil {
			return err
		}
		if i.classes[name] != nil {
			return nil
		}
	}
	return nil
}
