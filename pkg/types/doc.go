// Package types defines the flag record model, the schema configuration,
// selection variants, and standard errors for the pagemark flagging system.
package types
