package k8s

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

func testNode(name, cpu, mem, disk string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{Allocatable: corev1.ResourceList{
			corev1.ResourceCPU:              resource.MustParse(cpu),
			corev1.ResourceMemory:           resource.MustParse(mem),
			corev1.ResourceEphemeralStorage: resource.MustParse(disk),
		}},
	}
}

func testPod(ns, name, node string, phase corev1.PodPhase, cpu, mem string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name},
		Spec: corev1.PodSpec{
			NodeName: node,
			Containers: []corev1.Container{
				{Name: "app", Resources: corev1.ResourceRequirements{Requests: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse(cpu),
					corev1.ResourceMemory: resource.MustParse(mem),
				}}},
				{Name: "sidecar", Resources: corev1.ResourceRequirements{Requests: corev1.ResourceList{
					corev1.ResourceCPU: resource.MustParse("100m"),
				}}},
			},
		},
		Status: corev1.PodStatus{Phase: phase},
	}
}

func fixedRepo(core *fake.Clientset, m *metricsfake.Clientset, usage string) *Repo {
	r := NewForClients(core, m, "dev", usage)
	r.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return r
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadFromRequests(t *testing.T) {
	core := fake.NewSimpleClientset(
		testNode("worker-1", "4", "16Gi", "100Gi"),
		testPod("default", "api", "worker-1", corev1.PodRunning, "900m", "2Gi"),
		testPod("default", "job", "worker-1", corev1.PodSucceeded, "2", "4Gi"),
		testPod("default", "pending", "", corev1.PodPending, "1", "1Gi"),
	)
	snap, err := fixedRepo(core, nil, UsageRequests).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Timestamp != "2025-03-14T09:30:00Z" {
		t.Errorf("timestamp = %q", snap.Timestamp)
	}
	if len(snap.Servers) != 1 || snap.Servers[0].ID != "dev" {
		t.Fatalf("servers = %+v", snap.Servers)
	}
	nodes := snap.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d", len(nodes))
	}
	n := nodes[0]
	if !approx(n.CPU.Capacity, 4) || !approx(n.CPU.Used, 1) || !approx(n.CPU.Free, 3) {
		t.Errorf("cpu = %+v", n.CPU)
	}
	if !approx(n.Memory.Capacity, 16) || !approx(n.Memory.Used, 2) {
		t.Errorf("memory = %+v", n.Memory)
	}
	if !approx(n.Disk.Capacity, 100) || n.Disk.Used != 0 {
		t.Errorf("disk = %+v", n.Disk)
	}
	if n.VMsRunning != 1 || n.VMsStopped != 1 || len(n.VMs) != 2 {
		t.Errorf("vms = %d running %d stopped %+v", n.VMsRunning, n.VMsStopped, n.VMs)
	}
	var api domain.VMDetail
	for _, vm := range n.VMs {
		if vm.Name == "default/api" {
			api = vm
		}
	}
	if !api.Running() || !approx(api.CPU, 1) || !approx(api.Memory, 2) {
		t.Errorf("api vm = %+v", api)
	}
}

func TestLoadFromMetrics(t *testing.T) {
	core := fake.NewSimpleClientset(
		testNode("worker-1", "8", "32Gi", "100Gi"),
		testPod("default", "api", "worker-1", corev1.PodRunning, "1", "1Gi"),
	)
	m := metricsfake.NewSimpleClientset()
	m.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, &metricsv1beta1.NodeMetricsList{Items: []metricsv1beta1.NodeMetrics{{
			ObjectMeta: metav1.ObjectMeta{Name: "worker-1"},
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("6"),
				corev1.ResourceMemory: resource.MustParse("8Gi"),
			},
		}}}, nil
	})
	m.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, &metricsv1beta1.PodMetricsList{Items: []metricsv1beta1.PodMetrics{{
			ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "api"},
			Containers: []metricsv1beta1.ContainerMetrics{
				{Name: "app", Usage: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("250m")}},
				{Name: "sidecar", Usage: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("250m")}},
			},
		}}}, nil
	})

	snap, err := fixedRepo(core, m, UsageMetrics).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n := snap.Nodes()[0]
	if !approx(n.CPU.Used, 6) || !approx(n.Memory.Used, 8) || !approx(n.Memory.Free, 24) {
		t.Errorf("node usage cpu=%+v mem=%+v", n.CPU, n.Memory)
	}
	if !approx(n.VMs[0].CPU, 0.5) {
		t.Errorf("pod cpu = %v, want 0.5 from metrics", n.VMs[0].CPU)
	}
}

func TestLoadMetricsUnavailable(t *testing.T) {
	core := fake.NewSimpleClientset(
		testNode("worker-1", "8", "32Gi", "100Gi"),
		testPod("default", "api", "worker-1", corev1.PodRunning, "1", "1Gi"),
	)
	m := metricsfake.NewSimpleClientset()
	m.PrependReactor("list", "*", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("the server could not find the requested resource")
	})
	snap, err := fixedRepo(core, m, UsageMetrics).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := snap.Nodes()[0]; !approx(n.CPU.Used, 1.1) {
		t.Errorf("cpu used = %v, want requests 1.1", n.CPU.Used)
	}
}

func TestLoadListError(t *testing.T) {
	core := fake.NewSimpleClientset()
	core.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	if _, err := fixedRepo(core, nil, UsageRequests).Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
