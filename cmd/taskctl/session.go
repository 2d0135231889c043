package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskden/internal/remote"
)

type session struct {
	Server string `json:"server"`
	Token  string `json:"token"`
	Email  string `json:"email,omitempty"`
}

func sessionPath() (string, error) {
	if p := os.Getenv("TASKCTL_SESSION"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskden", "session.json"), nil
}

func loadSession() (session, error) {
	path, err := sessionPath()
	if err != nil {
		return session{}, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return session{}, nil
	}
	if err != nil {
		return session{}, err
	}
	var s session
	if err := json.Unmarshal(b, &s); err != nil {
		return session{}, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	return s, nil
}

func saveSession(s session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// client builds a remote client from the saved session, letting
// --server override the stored address.
func client(cmd *cobra.Command) (*remote.Client, session, error) {
	s, err := loadSession()
	if err != nil {
		return nil, session{}, err
	}
	if flag, _ := cmd.Flags().GetString("server"); flag != "" {
		s.Server = flag
	}
	if s.Server == "" {
		return nil, session{}, errors.New("no server configured; pass --server or log in first")
	}
	c := remote.New(s.Server)
	c.SetToken(s.Token)
	return c, s, nil
}

// authedClient is client plus the requirement that a token exists.
func authedClient(cmd *cobra.Command) (*remote.Client, error) {
	c, s, err := client(cmd)
	if err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, errors.New("not logged in; run taskctl login first")
	}
	return c, nil
}
