// Package profile stores the local user's identity: who they are and which
// side of an escrow they sit on. The role gates the submit-work action.
package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kshaw/clearhold/internal/escrow"
)

const profileFile = "profile.json"

// User is the locally stored profile.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"` // escrow.RoleFreelancer or escrow.RoleClient
	WalletAddress string `json:"walletAddress"`
}

// DisplayName returns the name shown in the header bar.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// IsFreelancer reports whether the profile can submit work.
func (u User) IsFreelancer() bool { return u.Role == escrow.RoleFreelancer }

func profilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "clearhold")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, profileFile), nil
}

// Save writes the profile atomically.
func Save(u User) error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	return saveTo(path, u)
}

// Load reads the stored profile. A missing file returns a zero User with a
// client role, which is the safe default.
func Load() (User, error) {
	path, err := profilePath()
	if err != nil {
		return User{}, err
	}
	return loadFrom(path)
}

func saveTo(path string, u User) error {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadFrom(path string) (User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return User{Role: escrow.RoleClient}, nil
		}
		return User{}, err
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, err
	}
	if u.Role == "" {
		u.Role = escrow.RoleClient
	}
	return u, nil
}
