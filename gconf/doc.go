/*
Package gconf provides a toolset for managing an extension configuration.

A configuration is a singleton stored under a key derived from the package
name. It is validated before every write. SaveOnce is used by extensions whose
configuration must never change once written.
*/
package gconf
