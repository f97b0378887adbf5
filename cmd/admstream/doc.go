// Package main hosts the admstream CLI.
//
// The Cobra command tree builds synthetic ADM scenes from configuration and
// drives them through the library: segmenting a scene into frames, combining
// frames back into a document, and reassigning or parsing element
// identities. Configuration resolution and logger setup live in the command
// context so subcommands only describe what they render.
package main
