// Package session houses the concrete core.SessionStore implementation. The
// interface itself (and the Session struct) live in the core package to
// centralize domain contracts; keeping only the implementation here prevents
// higher level packages from depending on concrete storage.
//
// The store keeps sessions in a process local map guarded by a RWMutex,
// persists a full JSON snapshot after every mutation and runs a periodic
// expiry sweeper. It assumes single-process ownership of its snapshot file:
// two live stores pointed at the same file would overwrite each other.
package session
