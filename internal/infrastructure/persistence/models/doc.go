// Package models contains GORM persistence models for the ledger tables.
// They are kept apart from domain entities so the domain stays free of ORM
// tags; each model has ToDomain / FromDomain mappers.
//
// Ledger child tables (works, material_usages, payments, installments,
// expenses, activities) carry customer_id and are only ever inserted,
// never updated.
package models
