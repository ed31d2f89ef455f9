// Package docker lets the reclaimer stop containers instead of killing
// docker-proxy.
//
// A host port published by a container is held by the docker-proxy
// process, so lsof names the proxy rather than the workload. Killing the
// proxy leaves the container running with broken forwarding. With
// container-aware reclaiming enabled, the containers publishing the port
// are looked up through the Docker Engine API and killed instead.
//
// The package uses github.com/docker/docker/client with API version
// negotiation enabled for broad daemon compatibility.
package docker
