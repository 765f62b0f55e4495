// Package account links forum identities to local users.
//
// Resolver implements the link/create/deny decision on top of a Repository.
// Two repositories are provided: MemoryRepository for tests and single-node
// development, PostgresRepository for production. Both make external group
// get-or-create atomic, so simultaneous first logins of members sharing a
// group produce a single local group.
package account
