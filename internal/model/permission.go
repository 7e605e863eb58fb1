package model

// PermissionOptions is the declarative permission configuration supplied by
// flags and config. It carries no behavior; the domain layer compiles it into
// an execution-scoped grant.
type PermissionOptions struct {
	AllowAll   bool
	AllowRead  []string
	AllowWrite []string
	AllowNet   []string
	AllowEnv   []string
	AllowRun   []string
}

// Empty reports whether no permission has been granted at all.
func (o PermissionOptions) Empty() bool {
	return !o.AllowAll &&
		len(o.AllowRead) == 0 &&
		len(o.AllowWrite) == 0 &&
		len(o.AllowNet) == 0 &&
		len(o.AllowEnv) == 0 &&
		len(o.AllowRun) == 0
}
