package sync_test

import (
	"testing"

	"github.com/einsteinx2/balance-open/pkg/usecase/sync"
)

func TestCanTransition(t *testing.T) {
	type args struct {
		from sync.State
		to   sync.State
	}
	tests := map[string]struct {
		args args
		want bool
	}{
		"idle to authenticating": {
			args: args{from: sync.Idle, to: sync.Authenticating},
			want: true,
		},
		"idle to syncing": {
			args: args{from: sync.Idle, to: sync.Syncing},
			want: false,
		},
		"idle to failed": {
			args: args{from: sync.Idle, to: sync.Failed},
			want: false,
		},
		"authenticating to syncing": {
			args: args{from: sync.Authenticating, to: sync.Syncing},
			want: true,
		},
		"authenticating to failed": {
			args: args{from: sync.Authenticating, to: sync.Failed},
			want: true,
		},
		"syncing to done": {
			args: args{from: sync.Syncing, to: sync.Done},
			want: true,
		},
		"syncing to failed": {
			args: args{from: sync.Syncing, to: sync.Failed},
			want: true,
		},
		"syncing to idle": {
			args: args{from: sync.Syncing, to: sync.Idle},
			want: false,
		},
		"done to syncing": {
			args: args{from: sync.Done, to: sync.Syncing},
			want: true,
		},
		"done to failed": {
			args: args{from: sync.Done, to: sync.Failed},
			want: true,
		},
		"failed is terminal": {
			args: args{from: sync.Failed, to: sync.Syncing},
			want: false,
		},
		"failed to idle": {
			args: args{from: sync.Failed, to: sync.Idle},
			want: false,
		},
		"unknown state": {
			args: args{from: sync.State("unknown"), to: sync.Done},
			want: false,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := sync.CanTransition(tt.args.from, tt.args.to); got != tt.want {
				t.Errorf("CanTransition() got = %v, want %v", got, tt.want)
			}
		})
	}
}
