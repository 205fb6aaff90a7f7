// Package env implements environment-variable resolution for a cluster
// invocation.
//
// Configuration is merged from four layered sources into one flat
// string→string mapping consumed by every other component:
//
//  1. --env KEY=VALUE flags (highest precedence)
//  2. an allow-list of shell environment variables
//  3. the [config] section of the user config file
//  4. the defaults file shipped with the module library (lowest)
//
// Sources are expressed as ordered Providers merged left-to-right with
// first-writer-wins semantics, so a value set by a higher-precedence source
// is never overwritten by a lower one. The resulting Environment is sealed:
// after Build the only permitted mutation is Publish, used by port
// assignment to add keys that did not exist before.
package env
