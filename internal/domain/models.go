package domain

import (
	"fmt"
	"strings"
)

type ResourceType int

const (
	CPU ResourceType = iota
	Memory
	Disk
)

// ResourceTypes is the ring order of the resource level.
var ResourceTypes = []ResourceType{CPU, Memory, Disk}

var resourceNames = map[ResourceType]string{
	CPU:    "CPU",
	Memory: "Memory",
	Disk:   "Disk",
}

var resourceUnits = map[ResourceType]string{
	CPU:    "cores",
	Memory: "GB",
	Disk:   "GB",
}

func (r ResourceType) String() string {
	if s, ok := resourceNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ResourceType(%d)", int(r))
}

// Unit is the display unit of quantities of this resource.
func (r ResourceType) Unit() string { return resourceUnits[r] }

// ParseResourceType accepts the English names and the Spanish ones used by
// older stats files ("Memoria", "Disco").
func ParseResourceType(s string) (ResourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return CPU, nil
	case "memory", "mem", "memoria":
		return Memory, nil
	case "disk", "disco", "storage":
		return Disk, nil
	}
	return 0, fmt.Errorf("unknown resource type %q", s)
}

func (r ResourceType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ResourceType) UnmarshalText(b []byte) error {
	v, err := ParseResourceType(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type Quantity struct {
	Capacity float64
	Used     float64
	Free     float64
}

type NodeStats struct {
	Server     string
	Name       string
	CPU        Quantity // cores
	Memory     Quantity // GB
	Disk       Quantity // GB
	VMsRunning int
	VMsStopped int
	VMs        []VMDetail
}

func (n NodeStats) Resource(rt ResourceType) Quantity {
	switch rt {
	case CPU:
		return n.CPU
	case Memory:
		return n.Memory
	case Disk:
		return n.Disk
	}
	return Quantity{}
}

// RunningVMs returns the VMs with status running, in input order.
func (n NodeStats) RunningVMs() []VMDetail {
	var out []VMDetail
	for _, vm := range n.VMs {
		if vm.Running() {
			out = append(out, vm)
		}
	}
	return out
}

type VMStatus string

const (
	VMRunning VMStatus = "running"
	VMStopped VMStatus = "stopped"
)

type VMDetail struct {
	Name   string
	Status VMStatus
	CPU    float64 // cores assigned
	Memory float64 // GB assigned
	Disk   float64 // GB assigned
}

func (v VMDetail) Running() bool { return v.Status == VMRunning }

func (v VMDetail) Assigned(rt ResourceType) float64 {
	switch rt {
	case CPU:
		return v.CPU
	case Memory:
		return v.Memory
	case Disk:
		return v.Disk
	}
	return 0
}

type Server struct {
	ID    string
	Nodes []NodeStats
}

// ClusterSnapshot is one stats capture. Servers and their nodes keep the
// order they had in the source document.
type ClusterSnapshot struct {
	Timestamp string
	Servers   []Server
}

// Nodes flattens all servers' nodes in document order.
func (s *ClusterSnapshot) Nodes() []NodeStats {
	if s == nil {
		return nil
	}
	var out []NodeStats
	for _, srv := range s.Servers {
		out = append(out, srv.Nodes...)
	}
	return out
}

// Total is the cluster-wide used quantity of rt.
func (s *ClusterSnapshot) Total(rt ResourceType) float64 {
	var t float64
	for _, n := range s.Nodes() {
		t += n.Resource(rt).Used
	}
	return t
}

// PositiveTotal sums only the positive used quantities of rt, the share
// base of the node ring.
func (s *ClusterSnapshot) PositiveTotal(rt ResourceType) float64 {
	var t float64
	for _, n := range s.Nodes() {
		if u := n.Resource(rt).Used; u > 0 {
			t += u
		}
	}
	return t
}
