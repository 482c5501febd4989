package domain

import "testing"

func TestDeriveCarStatus(t *testing.T) {
	paid := &Payment{Status: PaymentPaid}
	pending := &Payment{Status: PaymentPending}

	cases := []struct {
		name    string
		repairs []Repair
		payment *Payment
		want    CarStatus
	}{
		{"no repairs, no payment", nil, nil, CarWaiting},
		{"no repairs, pending payment", nil, pending, CarWaiting},
		{"one pending repair", []Repair{{State: RepairPending}}, pending, CarInRepair},
		{"one in-progress repair", []Repair{{State: RepairInProgress}}, pending, CarInRepair},
		{"mixed done and pending", []Repair{{State: RepairDone}, {State: RepairPending}}, pending, CarInRepair},
		{"all done", []Repair{{State: RepairDone}, {State: RepairDone}}, pending, CarRepaired},
		{"paid beats everything", []Repair{{State: RepairPending}}, paid, CarPaid},
		{"paid with no repairs", nil, paid, CarPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveCarStatus(tc.repairs, tc.payment); got != tc.want {
				t.Fatalf("DeriveCarStatus() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestParseCarStatus(t *testing.T) {
	for _, s := range []string{"waiting", "in_repair", "repaired", "paid"} {
		if got, ok := ParseCarStatus(s); !ok || string(got) != s {
			t.Fatalf("ParseCarStatus(%q) = %q, %v", s, got, ok)
		}
	}
	for _, s := range []string{"", "Waiting", "in-repair", "totaled"} {
		if _, ok := ParseCarStatus(s); ok {
			t.Fatalf("ParseCarStatus(%q) should be rejected", s)
		}
	}
}

func TestParseRepairState(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "done"} {
		if got, ok := ParseRepairState(s); !ok || string(got) != s {
			t.Fatalf("ParseRepairState(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := ParseRepairState("cancelled"); ok {
		t.Fatalf("ParseRepairState(\"cancelled\") should be rejected")
	}
}

func TestInterventionType_DurationLabel(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{1800, "30min"},
		{3600, "1h"},
		{5400, "1h 30min"},
		{7200, "2h"},
		{0, "0min"},
	}
	for _, tc := range cases {
		it := InterventionType{DurationSeconds: tc.seconds}
		if got := it.DurationLabel(); got != tc.want {
			t.Fatalf("DurationLabel(%d) = %q; want %q", tc.seconds, got, tc.want)
		}
	}
}
