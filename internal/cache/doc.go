// Package cache owns the on-disk cache directory. Dir manages the directory
// tree itself (init, listing, wipe); Store reads and atomically writes the
// individual <name>.nc entries inside it through a temp file and a rename.
package cache
