// Package dataset defines the normalized solar spectral irradiance data set,
// the assembler that converts raw quantities into it, and its on-disk
// encodings (netCDF for the cache, Parquet for export).
package dataset
