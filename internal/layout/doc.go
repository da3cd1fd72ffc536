// Package layout migrates replay files from the legacy flat directory
// naming into the sharded content store.
package layout
