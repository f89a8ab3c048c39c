// File: internal/platform/statestore/redundant.go
package statestore

// Redundant writes every value to two stores and reads from the first
// one that has it. A value survives as long as either copy does, and a
// failed write to one store does not fail the operation while the other
// succeeds.
type Redundant struct {
	primary   Store
	secondary Store
}

func NewRedundant(primary, secondary Store) *Redundant {
	return &Redundant{primary: primary, secondary: secondary}
}

func (r *Redundant) Get(key string, v interface{}) (bool, error) {
	ok, err := r.primary.Get(key, v)
	if err == nil && ok {
		return true, nil
	}
	// Primary miss or error falls through to the secondary.
	ok2, err2 := r.secondary.Get(key, v)
	if ok2 {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, err2
}

func (r *Redundant) Put(key string, v interface{}) error {
	err1 := r.primary.Put(key, v)
	err2 := r.secondary.Put(key, v)
	if err1 != nil && err2 != nil {
		return err1
	}
	return nil
}

func (r *Redundant) Delete(key string) error {
	err1 := r.primary.Delete(key)
	err2 := r.secondary.Delete(key)
	if err1 != nil {
		return err1
	}
	return err2
}
