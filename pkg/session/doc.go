/*
Package session keeps one workflow controller per session ID and serializes the
blocking actions taken on it.

Controllers are created and bootstrapped lazily on first access. Per-session
mutexes are reference counted so idle sessions leave nothing behind; with a
ports.DistributedLocker the same guarantee holds across shell replicas.
*/
package session
