//go:build !slabdebug

package fibre

const debugChecks = false
