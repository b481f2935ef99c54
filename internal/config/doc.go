// Package config defines the application configuration structure and loading.
//
// Configuration comes from three sources, in increasing precedence:
// built-in defaults, an optional labelpress.yaml file in the working
// directory, and LABELPRESS_-prefixed environment variables.
package config
