// Package formats provides parsers for the Wavefront OBJ and MTL text
// formats the satellite model is authored in.
package formats
