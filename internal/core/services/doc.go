// Package services contains the application core services implementing
// the driving ports. Services orchestrate the domain logic using the
// driven ports and are unaware of any adapter specifics.
package services
