// Package corpus stores named training texts in a SQLite database, so that
// models can be rebuilt from them on demand. Only source text is stored;
// built models are never persisted.
package corpus
