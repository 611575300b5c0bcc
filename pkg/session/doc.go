/*
Package session coordinates access to stored run records.

It serializes operations on the same run ID inside one process with
reference-counted mutexes and, when a DistributedLocker is configured,
across replicas that share a store.
*/
package session
