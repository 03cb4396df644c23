// Package uniuri generates random strings for opaque tokens such as refresh
// tokens. Characters are drawn from crypto/rand without modulo bias.
package uniuri
