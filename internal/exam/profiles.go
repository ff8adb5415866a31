// Package exam loads exam profiles used to shape the generation persona.
package exam

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Profile describes one exam program.
type Profile struct {
	Exam            string   `yaml:"exam"`
	Persona         string   `yaml:"persona"`
	DifficultyBands []string `yaml:"difficulty_bands"`
}

// Profiles loads and caches exam profiles from a directory of YAML files.
type Profiles struct {
	rootDir  string
	profiles map[string]Profile // lowercased exam name -> profile
	mu       sync.RWMutex
}

// Load reads all profile YAML files under rootDir. A missing directory is
// not an error; every exam then gets the default persona.
func Load(rootDir string) (*Profiles, error) {
	p := &Profiles{
		rootDir:  rootDir,
		profiles: make(map[string]Profile),
	}

	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		slog.Info("no exam profiles directory, using defaults", "dir", rootDir)
		return p, nil
	}

	if err := p.loadAll(); err != nil {
		return nil, fmt.Errorf("loading exam profiles: %w", err)
	}

	slog.Info("exam profiles loaded", "count", len(p.profiles))
	return p, nil
}

func (p *Profiles) loadAll() error {
	return filepath.Walk(p.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var profile Profile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			slog.Warn("skipping invalid profile YAML", "path", path, "error", err)
			return nil
		}
		if profile.Exam == "" {
			return nil // Not a profile file
		}

		p.mu.Lock()
		p.profiles[strings.ToLower(profile.Exam)] = profile
		p.mu.Unlock()
		return nil
	})
}

// Lookup returns the profile for an exam, falling back to a generic
// assessment-specialist persona that names the exam.
func (p *Profiles) Lookup(exam string) Profile {
	p.mu.RLock()
	profile, ok := p.profiles[strings.ToLower(exam)]
	p.mu.RUnlock()
	if ok {
		if profile.Persona == "" {
			profile.Persona = defaultPersona(exam)
		}
		return profile
	}
	return Profile{
		Exam:    exam,
		Persona: defaultPersona(exam),
	}
}

func defaultPersona(exam string) string {
	return fmt.Sprintf("You are an expert assessment specialist for the %s exam. Your goal is to create high-quality, valid multiple-choice questions that measure specific competencies.", exam)
}
