//go:build slabdebug

package fibre

// Built with -tags slabdebug every mutation re-checks the fibre invariant.
const debugChecks = true
