package domain

// Actor is the administrator performing a privileged operation. It is rebuilt
// from a verified credential on every request and never persisted.
type Actor struct {
	UID    string
	Email  string
	Claims map[string]any
}
