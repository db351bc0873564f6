package envstruct_test

import (
	"github.com/myrjola/repquiz/internal/envstruct"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func TestPopulate(t *testing.T) {
	type args struct {
		v         any
		lookupEnv func(string) (string, bool)
	}
	unset := func(_ string) (string, bool) { return "", false }
	tests := []struct {
		name    string
		args    args
		want    any
		wantErr error
	}{
		{
			name:    "nil",
			args:    args{v: nil, lookupEnv: unset},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "not pointer",
			args:    args{v: struct{}{}, lookupEnv: unset},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "empty struct",
			args:    args{v: &struct{}{}, lookupEnv: unset},
			want:    &struct{}{},
			wantErr: nil,
		},
		{
			name: "empty env",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr string `env:"QUIZ_ADDR"`
				}{},
				lookupEnv: unset,
			},
			want:    nil,
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name: "picks correct env variable",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr       string `env:"QUIZ_ADDR"`
					Mode       string `env:"QUIZ_MODE"`
					OtherValue string
				}{},
				lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			},
			want: &struct {
				Addr       string
				Mode       string
				OtherValue string
			}{Addr: "quiz_addr", Mode: "quiz_mode", OtherValue: ""},
			wantErr: nil,
		},
		{
			name: "handles default value",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Mode string `env:"QUIZ_MODE" envDefault:"reveal"`
				}{},
				lookupEnv: unset,
			},
			want:    &struct{ Mode string }{Mode: "reveal"},
			wantErr: nil,
		},
		{
			name: "parses typed fields",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Idle    time.Duration `env:"QUIZ_GAME_IDLE_TIMEOUT" envDefault:"2h"`
					Verbose bool          `env:"QUIZ_VERBOSE" envDefault:"true"`
					Workers int           `env:"QUIZ_WORKERS"`
				}{},
				lookupEnv: func(s string) (string, bool) {
					if s == "QUIZ_WORKERS" {
						return "4", true
					}
					return "", false
				},
			},
			want: &struct {
				Idle    time.Duration
				Verbose bool
				Workers int
			}{Idle: 2 * time.Hour, Verbose: true, Workers: 4},
			wantErr: nil,
		},
		{
			name: "rejects malformed duration",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Idle time.Duration `env:"QUIZ_GAME_IDLE_TIMEOUT" envDefault:"forever"`
				}{},
				lookupEnv: unset,
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "rejects unsupported types",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Ratio float64 `env:"QUIZ_RATIO" envDefault:"0.5"`
				}{},
				lookupEnv: unset,
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.args.v
			err := envstruct.Populate(v, tt.args.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.EqualValues(t, tt.want, v)
			}
		})
	}
}
