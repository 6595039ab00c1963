package domain

// ConnectionState reflects the simulated account connectivity.
// The credential is an opaque token supplied by the presentation layer;
// it is never validated against anything.
type ConnectionState struct {
	Connected  bool   `json:"connected"`
	Credential string `json:"credential,omitempty"`
}
