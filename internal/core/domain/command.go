package domain

import (
	"slices"
	"strings"

	"github.com/awnumar/memguard"
)

// Command is one shell-level operation supplied by the caller.
type Command struct {
	Argv           []string `json:"argv" validate:"required,min=1,dive,required"`
	NeedsElevation bool     `json:"needs_elevation"`
	Abortable      bool     `json:"abortable"`
	DryRun         bool     `json:"dry_run"`
}

// Clone returns a copy that does not share argv.
func (c Command) Clone() Command {
	c.Argv = slices.Clone(c.Argv)
	return c
}

func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Expand prefixes the elevation argv when the command needs it.
func (c Command) Expand(elevation []string) []string {
	if !c.NeedsElevation || len(elevation) == 0 {
		return slices.Clone(c.Argv)
	}
	out := make([]string, 0, len(elevation)+len(c.Argv))
	out = append(out, elevation...)
	return append(out, c.Argv...)
}

// CredentialPurpose says what a secret is for.
type CredentialPurpose uint8

const (
	// CredentialElevation is the password of an elevation tool.
	CredentialElevation CredentialPurpose = iota
	// CredentialPassphrase is any other passphrase asked by the child.
	CredentialPassphrase
)

func (p CredentialPurpose) String() string {
	if p == CredentialPassphrase {
		return "passphrase"
	}
	return "elevation"
}

// CredentialRequest asks the user for a secret out of band.
type CredentialRequest struct {
	SessionID  string
	Purpose    CredentialPurpose
	PromptText string
	Attempt    int
}

// CredentialResponse carries the secret or a cancellation.
// The receiver destroys Secret after use.
type CredentialResponse struct {
	Secret    *memguard.LockedBuffer
	Cancelled bool
}

// Destroy wipes the secret if present.
func (r CredentialResponse) Destroy() {
	if r.Secret != nil {
		r.Secret.Destroy()
	}
}
