// Package store holds the two client-side state containers: the auth store
// (sign-in state and token cookies) and the cart store (desired purchase
// quantities). Each loads its persisted blob on construction and saves it on
// every mutation through a Persister; nothing else writes those blobs.
package store
