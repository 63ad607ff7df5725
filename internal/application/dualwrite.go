package application

// dualWrite runs the document-store write, then the relational mirror write.
// If the first write fails the second is never attempted and the entity is
// considered not persisted. If the second fails, the first is NOT rolled back:
// the stores are left inconsistent and the error surfaces to the caller.
// Best-effort by design; there is no cross-store transaction.
func dualWrite(primary, mirror func() error) error {
	if err := primary(); err != nil {
		return err
	}
	return mirror()
}
