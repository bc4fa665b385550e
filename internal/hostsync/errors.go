package hostsync

import "errors"

// Run-level failures abort the whole pass.
var (
	ErrAuth    = errors.New("hostsync: token exchange failed")
	ErrListing = errors.New("hostsync: listing failed")
)

// Company-level failures are recorded against one company and never stop the pass.
var (
	ErrValidation   = errors.New("hostsync: validation rejected")
	ErrPersistence  = errors.New("hostsync: persistence failed")
	ErrProvisioning = errors.New("hostsync: provisioning failed")
)

// ErrAlreadyRunning is returned when a pass is requested while another one is active.
var ErrAlreadyRunning = errors.New("hostsync: a run is already in progress")
