// Package connectors provides implementations of the Connector
// interface. Caderno ships a single filesystem connector that scans a
// directory tree for study material.
package connectors
