// Package services contains the core business logic for Caderno.
// Services implement the driving ports and depend only on domain
// types and driven port interfaces.
package services
