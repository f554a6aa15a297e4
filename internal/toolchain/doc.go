// Package toolchain compiles the selected kernel translation units with the host C
// compiler and packs the objects into a static archive. It also lists the defined
// symbols of an archive with nm.
package toolchain
