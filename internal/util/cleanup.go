package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// TmpSuffix marks chapter folders that are still being filled before
// they are packed into a CBZ.
const TmpSuffix = "_tmp"

func SetupInterruptHandler(outputDir string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		CleanupUnfinishedTempFolders(outputDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()
}

// CleanupUnfinishedTempFolders removes every *_tmp directory below
// outputDir, along with parents left empty.
func CleanupUnfinishedTempFolders(outputDir string) {
	var found []string

	_ = filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != outputDir && strings.HasSuffix(d.Name(), TmpSuffix) {
			found = append(found, p)
			return filepath.SkipDir
		}
		return nil
	})

	for _, full := range found {
		if err := os.RemoveAll(full); err != nil {
			fmt.Printf("Error cleaning up %s: %v\n", full, err)
			continue
		}
		fmt.Printf("Removed %s\n", full)

		for dir := filepath.Dir(full); dir != outputDir && strings.HasPrefix(dir, outputDir); dir = filepath.Dir(dir) {
			if !RemoveIfEmpty(dir) {
				break
			}
		}
	}
}

// RemoveIfEmpty deletes dir when it has no entries and reports whether it did.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}

func CleanupFolder(folder string) {
	_ = os.RemoveAll(folder)
}
