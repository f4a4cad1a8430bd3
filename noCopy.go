package imposter

// noCopy makes "go vet" report copies of the struct embedding it.
// Imposter and Vec own their values, a copy would own them twice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
