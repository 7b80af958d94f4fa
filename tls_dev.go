//go:build dev

package authclient

const devBuild = true
