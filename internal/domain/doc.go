// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The central entity is Entry, a diary entry generated from a writer's short
// note by one of the configured text-generation providers.
package domain
