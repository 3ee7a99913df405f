package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// wire shape of a stats file:
//
//	{"timestamp": "...", "server_data": {"<server>": {"<node>": {...}}}}
type wireNode struct {
	CPUMax     float64  `json:"cpu_max"`
	CPUUsed    float64  `json:"cpu_used"`
	CPUFree    float64  `json:"cpu_free"`
	MemMax     float64  `json:"mem_max"`
	MemUsed    float64  `json:"mem_used"`
	MemFree    float64  `json:"mem_free"`
	DiskMax    float64  `json:"disk_max"`
	DiskUsed   float64  `json:"disk_used"`
	DiskFree   float64  `json:"disk_free"`
	VMsRunning int      `json:"vms_running"`
	VMsStopped int      `json:"vms_stopped"`
	VMDetails  []wireVM `json:"vm_details"`
}

type wireVM struct {
	Name         string  `json:"vm_name"`
	Status       string  `json:"status"`
	CPUAssigned  float64 `json:"cpu_assigned"`
	MemAssigned  float64 `json:"mem_assigned"`
	DiskAssigned float64 `json:"disk_assigned"`
}

// DecodeSnapshot reads a stats document. Server and node order follows the
// document, which a plain map decode would lose.
func DecodeSnapshot(r io.Reader) (*ClusterSnapshot, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(b)
}

func ParseSnapshot(b []byte) (*ClusterSnapshot, error) {
	var top struct {
		Timestamp  string          `json:"timestamp"`
		ServerData json.RawMessage `json:"server_data"`
	}
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if len(top.ServerData) == 0 {
		return nil, errors.New("parse snapshot: missing server_data")
	}

	snap := &ClusterSnapshot{Timestamp: top.Timestamp}
	err := objectEach(top.ServerData, func(serverID string, raw json.RawMessage) error {
		srv := Server{ID: serverID}
		err := objectEach(raw, func(nodeID string, raw json.RawMessage) error {
			var wn wireNode
			if err := json.Unmarshal(raw, &wn); err != nil {
				return fmt.Errorf("node %s/%s: %w", serverID, nodeID, err)
			}
			srv.Nodes = append(srv.Nodes, wn.toNode(serverID, nodeID))
			return nil
		})
		if err != nil {
			return err
		}
		snap.Servers = append(snap.Servers, srv)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, nil
}

// objectEach calls fn for every member of the JSON object b, in order.
// A JSON null is treated as an empty object.
func objectEach(b []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("member %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func (wn wireNode) toNode(server, name string) NodeStats {
	n := NodeStats{
		Server:     server,
		Name:       name,
		CPU:        Quantity{Capacity: wn.CPUMax, Used: wn.CPUUsed, Free: wn.CPUFree},
		Memory:     Quantity{Capacity: wn.MemMax, Used: wn.MemUsed, Free: wn.MemFree},
		Disk:       Quantity{Capacity: wn.DiskMax, Used: wn.DiskUsed, Free: wn.DiskFree},
		VMsRunning: wn.VMsRunning,
		VMsStopped: wn.VMsStopped,
	}
	for _, v := range wn.VMDetails {
		n.VMs = append(n.VMs, VMDetail{
			Name:   v.Name,
			Status: VMStatus(v.Status),
			CPU:    v.CPUAssigned,
			Memory: v.MemAssigned,
			Disk:   v.DiskAssigned,
		})
	}
	return n
}

func fromNode(n NodeStats) wireNode {
	wn := wireNode{
		CPUMax: n.CPU.Capacity, CPUUsed: n.CPU.Used, CPUFree: n.CPU.Free,
		MemMax: n.Memory.Capacity, MemUsed: n.Memory.Used, MemFree: n.Memory.Free,
		DiskMax: n.Disk.Capacity, DiskUsed: n.Disk.Used, DiskFree: n.Disk.Free,
		VMsRunning: n.VMsRunning,
		VMsStopped: n.VMsStopped,
		VMDetails:  []wireVM{},
	}
	for _, v := range n.VMs {
		wn.VMDetails = append(wn.VMDetails, wireVM{
			Name:         v.Name,
			Status:       string(v.Status),
			CPUAssigned:  v.CPU,
			MemAssigned:  v.Memory,
			DiskAssigned: v.Disk,
		})
	}
	return wn
}

// EncodeSnapshot writes s in the stats document shape, keeping server and
// node order.
func EncodeSnapshot(w io.Writer, s *ClusterSnapshot) error {
	var buf bytes.Buffer
	ts, _ := json.Marshal(s.Timestamp)
	buf.WriteString(`{"timestamp":`)
	buf.Write(ts)
	buf.WriteString(`,"server_data":{`)
	for i, srv := range s.Servers {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(srv.ID)
		buf.Write(k)
		buf.WriteString(":{")
		for j, n := range srv.Nodes {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(n.Name)
			v, err := json.Marshal(fromNode(n))
			if err != nil {
				return fmt.Errorf("encode node %s/%s: %w", srv.ID, n.Name, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
