// Package library reads the module library: the versioned bundle of module
// definitions (compose fragments plus metadata) and base environment files
// that the CLI provisions clusters from. The library is a separate artifact
// from the CLI program; this package only reads it, never writes it.
//
// Layout on disk:
//
//	<lib>/
//	  version
//	  minitrino.env
//	  docker-compose.yaml
//	  modules/
//	    admin/<name>/<name>.yaml, metadata.json, [bootstrap.sh]
//	    catalog/<name>/...
//	    security/<name>/...
//
// metadata.json is JSONC (comments are common in shipped libraries), so it
// is stripped with github.com/tidwall/jsonc before parsing.
package library
