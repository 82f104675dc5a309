// Package source provides bundle source implementations: files on disk,
// scripted mocks for tests, and machine translation through OpenAI.
package source

import "github.com/ZaguanLabs/gotlres"

// BundleSource is the interface for bundle backends.
// This is an alias to the main package interface for convenience.
type BundleSource = gotlres.BundleSource

// Bundle is an alias to the main package type.
type Bundle = gotlres.Bundle
