// Package models holds the GORM models of the depreciation tables and their
// mapping to domain types. Domain types carry no GORM tags.
package models
