// Package source holds one transform per published data set family. A
// transform retrieves the raw payload through an Env, parses it, tags the
// numbers with their units and hands them to dataset.Assemble.
//
// Temporary files live in Env.ScratchDir and are removed before a transform
// returns, whether it succeeded or not.
package source
