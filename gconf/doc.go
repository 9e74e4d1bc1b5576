/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration entity, stored under the
"_c:<package>" key. The initial value is read from the genesis file
("conf" section, keyed by the package name) and may later be changed by
the configuration owner with an update message.
*/
package gconf
