package mock

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

// Repo makes up a Proxmox-like cluster. Every Load draws a new snapshot.
type Repo struct {
	rnd *rand.Rand
}

func New() *Repo {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded gives a reproducible sequence of snapshots.
func NewSeeded(seed int64) *Repo {
	return &Repo{rnd: rand.New(rand.NewSource(seed))}
}

func (r *Repo) Name() string { return "mock" }

var (
	servers   = []string{"pve-madrid", "pve-valencia"}
	cpuSizes  = []float64{16, 24, 32, 48}
	memSizes  = []float64{64, 128, 256}
	diskSizes = []float64{500, 1000, 2000}
	vmCPU     = []float64{1, 2, 4, 8}
	vmMem     = []float64{2, 4, 8, 16, 32}
	workloads = []string{"web", "db", "cache", "ci", "mail", "dns", "vpn", "backup", "git", "mon"}
)

func (r *Repo) Load(ctx context.Context) (*domain.ClusterSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := &domain.ClusterSnapshot{Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05")}
	for si, s := range servers {
		srv := domain.Server{ID: s}
		nodes := 2 + r.rnd.Intn(3)
		for ni := 0; ni < nodes; ni++ {
			srv.Nodes = append(srv.Nodes, r.node(s, fmt.Sprintf("node%d%d", si+1, ni+1)))
		}
		snap.Servers = append(snap.Servers, srv)
	}
	return snap, nil
}

func (r *Repo) node(server, name string) domain.NodeStats {
	n := domain.NodeStats{Server: server, Name: name}
	cpuMax := pick(r.rnd, cpuSizes)
	memMax := pick(r.rnd, memSizes)
	diskMax := pick(r.rnd, diskSizes)

	// an idle node now and then, to exercise zero-usage arcs
	count := 0
	if r.rnd.Float64() > 0.15 {
		count = 2 + r.rnd.Intn(7)
	}
	var cpu, mem, disk float64
	for i := 0; i < count; i++ {
		vm := domain.VMDetail{
			Name:   fmt.Sprintf("%s-%s-%02d", name, pick(r.rnd, workloads), i+1),
			Status: domain.VMRunning,
			CPU:    pick(r.rnd, vmCPU),
			Memory: pick(r.rnd, vmMem),
			Disk:   float64(20 + 10*r.rnd.Intn(30)),
		}
		if r.rnd.Float64() < 0.2 {
			vm.Status = domain.VMStopped
			n.VMsStopped++
		} else {
			n.VMsRunning++
			cpu += vm.CPU
			mem += vm.Memory
		}
		// disks stay allocated for stopped VMs too
		disk += vm.Disk
		n.VMs = append(n.VMs, vm)
	}
	n.CPU = domain.Quantity{Capacity: cpuMax, Used: cpu, Free: cpuMax - cpu}
	n.Memory = domain.Quantity{Capacity: memMax, Used: mem, Free: memMax - mem}
	n.Disk = domain.Quantity{Capacity: diskMax, Used: disk, Free: diskMax - disk}
	return n
}

func pick[T any](r *rand.Rand, xs []T) T { return xs[r.Intn(len(xs))] }
