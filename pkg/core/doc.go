// Package core defines the shared language of the dataset generator.
//
// This package contains:
//   - The exported document (Document, Table, Column, Relation)
//   - Ordered sample rows (Row, Field) and their JSON codec
//   - The column type and cardinality vocabularies
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// Every other package depends on core, not the reverse.
package core
