// Package connectors provides implementations of the Connector interface
// for the supported document sources. Each connector binds to a single
// repository and streams its ingestable files; sources that can observe
// changes also implement watching.
//
// For picks the connector matching a repository reference: GitHub URLs
// and owner/name pairs get the GitHub connector, anything else is
// treated as a local directory.
package connectors
