// Package os has small file system and process helpers.
package os

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func CheckCreateDir(path string) error {
	if !Exists(path) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// ExpectTermination returns a channel that gets a value on SIGINT or SIGTERM.
func ExpectTermination() chan struct{} {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{}, 1)
	go func() {
		<-signals
		done <- struct{}{}
	}()
	return done
}

// ExpandHome replaces the {home} tag in path with the user home directory.
func ExpandHome(path string) (string, error) {
	const tag = "{home}"
	if !strings.Contains(path, tag) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(path, tag, home), nil
}
