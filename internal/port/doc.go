// Package port implements port probing and port reclaiming for the
// portreclaim CLI.
//
// Two probe variants exist:
//
//   - Scanner binds a listener on address:port and releases it at once.
//     This works for any address the host can bind, so it is used for
//     address-qualified and CIDR checks.
//   - TableProber asks the OS socket table (lsof) who holds a port. It only
//     sees the local host, but it can name the holding process, which the
//     Reclaimer needs.
//
// The OS-specific lookup and signal delivery sit behind the ProcessTable
// interface, so the Driver never depends on lsof or on a signal API.
package port
