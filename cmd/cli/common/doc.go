// Package common houses the selection flags and dependency resolution shared
// by the forall, status, and restore commands.
package common
