package cfn

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func renderElement(t *testing.T, e Element) string {
	t.Helper()
	parent := NewObject()
	e.Render(parent)
	return mustJSON(t, parent)
}

func TestElementRender(t *testing.T) {
	r2 := NewResource("R2")
	x := NewResource("X")
	y := NewResource("Y")

	tests := map[string]struct {
		elem Element
		want string
	}{
		"mapping define": {
			NewMapping("M").Define("Cat", P("K", "V")),
			`{"M":{"Cat":{"K":"V"}}}`,
		},
		"mapping several categories": {
			NewMapping("GroupToCIDR").
				Define("VPC", P("CIDR", "10.104.0.0/16")).
				Define("Subnet", P("CIDR", "10.104.128.0/24"), P("Zone", "a")),
			`{"GroupToCIDR":{"VPC":{"CIDR":"10.104.0.0/16"},"Subnet":{"CIDR":"10.104.128.0/24","Zone":"a"}}}`,
		},
		"property referring to element": {
			NewResource("R1").Properties(NewScalar("Id", RefTo(r2))),
			`{"R1":{"Properties":{"Id":{"Ref":"R2"}}}}`,
		},
		"depends on one": {
			NewResource("R").DependsOn(x),
			`{"R":{"DependsOn":"X"}}`,
		},
		"depends on several": {
			NewResource("R").DependsOn(x, LogicalID("Z"), y),
			`{"R":{"DependsOn":["X","Z","Y"]}}`,
		},
		"resource policies": {
			NewResource("Bucket").
				Type("AWS::S3::Bucket").
				Condition("CreateBucket").
				DeletionPolicy("Retain").
				Metadata(NewScalar("Owner", Str("ops"))),
			`{"Bucket":{"Type":"AWS::S3::Bucket","Condition":"CreateBucket","DeletionPolicy":"Retain","Metadata":{"Owner":"ops"}}}`,
		},
		"parameter constraints": {
			NewParameter("Size").
				Type("Number").
				Description("instance count").
				Default(2).
				MinValue(1).
				MaxValue(10).
				AllowedValues(1, 2, 5, 10).
				ConstraintDescription("must be 1, 2, 5 or 10"),
			`{"Size":{"Type":"Number","Description":"instance count","Default":2,"MinValue":1,"MaxValue":10,"AllowedValues":[1,2,5,10],"ConstraintDescription":"must be 1, 2, 5 or 10"}}`,
		},
		"parameter string constraints": {
			NewParameter("DBPassword").
				Type("String").
				NoEcho(true).
				MinLength(8).
				MaxLength(41).
				AllowedPattern("[a-zA-Z0-9]*"),
			`{"DBPassword":{"Type":"String","NoEcho":true,"MinLength":8,"MaxLength":41,"AllowedPattern":"[a-zA-Z0-9]*"}}`,
		},
		"output with export": {
			NewOutput("VpcId").Description("-").Value(RefTo(LogicalID("VPC"))).Export(Join("-", Ref(LogicalID("AWS::StackName")), "VpcId")),
			`{"VpcId":{"Description":"-","Value":{"Ref":"VPC"},"Export":{"Name":{"Fn::Join":["-",[{"Ref":"AWS::StackName"},"VpcId"]]}}}}`,
		},
		"duplicate attribute names overwrite in place": {
			NewResource("R").Type("First").Properties().Type("Second"),
			`{"R":{"Type":"Second","Properties":{}}}`,
		},
		"empty element": {
			NewOutput("Nothing"),
			`{"Nothing":{}}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := renderElement(t, test.elem)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResourceProperty(t *testing.T) {
	a := NewScalar("A", Str("1"))
	b := NewScalar("B", Str("2"))
	c := NewScalar("C", Str("3"))

	t.Run("creates the bag", func(t *testing.T) {
		r := NewResource("R").Type("T").Property(a)
		got := renderElement(t, r)
		want := `{"R":{"Type":"T","Properties":{"A":"1"}}}`
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong result (-want +got):\n%s", diff)
		}
		if n := len(r.Attributes()); n != 2 {
			t.Errorf("resource has %d attributes; want 2", n)
		}
	})
	t.Run("appends to the existing bag", func(t *testing.T) {
		r := NewResource("R").Properties(a, b).Property(c)
		got := renderElement(t, r)
		want := `{"R":{"Properties":{"A":"1","B":"2","C":"3"}}}`
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong result (-want +got):\n%s", diff)
		}
		if n := len(r.Attributes()); n != 1 {
			t.Errorf("resource has %d attributes; want 1", n)
		}
	})
	t.Run("successive calls accumulate", func(t *testing.T) {
		r := NewResource("R").Property(a).Property(b).Property(c)
		got := renderElement(t, r)
		want := `{"R":{"Properties":{"A":"1","B":"2","C":"3"}}}`
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong result (-want +got):\n%s", diff)
		}
	})
	t.Run("first bag wins", func(t *testing.T) {
		r := NewResource("R").Properties(a).Properties(b).Property(c)
		first := r.Attributes()[0].(*MultiValueMapAttribute)
		if got, want := len(first.Values), 2; got != want {
			t.Fatalf("first bag has %d values; want %d", got, want)
		}
		second := r.Attributes()[1].(*MultiValueMapAttribute)
		if got, want := len(second.Values), 1; got != want {
			t.Fatalf("second bag has %d values; want %d", got, want)
		}

		// The later bag still replaces the earlier one in the output.
		got := renderElement(t, r)
		want := `{"R":{"Properties":{"B":"2"}}}`
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong result (-want +got):\n%s", diff)
		}
	})
}

func TestSetAttribute(t *testing.T) {
	target := NewResource("Target")

	tests := map[string]struct {
		value   interface{}
		want    string
		wantErr error
	}{
		"string": {
			value: "AWS::EC2::VPC",
			want:  `{"R":{"X":"AWS::EC2::VPC"}}`,
		},
		"element": {
			value: target,
			want:  `{"R":{"X":{"Ref":"Target"}}}`,
		},
		"typed value": {
			value: Seq("a", "b"),
			want:  `{"R":{"X":["a","b"]}}`,
		},
		"attribute list": {
			value: []Attribute{NewScalar("K", Str("V")), NewScalar("L", RefTo(target))},
			want:  `{"R":{"X":{"K":"V","L":{"Ref":"Target"}}}}`,
		},
		"mixed list": {
			value: []interface{}{
				Pairs{P("K", "1"), P("L", "2")},
				NewScalar("K", Str("3")),
				map[string]interface{}{"B": "b", "A": "a"},
			},
			want: `{"R":{"X":{"K":"3","L":"2","A":"a","B":"b"}}}`,
		},
		"pairs": {
			value: Pairs{P("K", "V")},
			want:  `{"R":{"X":{"K":"V"}}}`,
		},
		"number": {
			value:   42,
			wantErr: ErrUnsupportedValueKind,
		},
		"bare attribute": {
			value:   NewScalar("K", Str("V")),
			wantErr: ErrUnsupportedValueKind,
		},
		"logical id": {
			value:   LogicalID("Target"),
			wantErr: ErrUnsupportedValueKind,
		},
		"list of strings": {
			value:   []interface{}{"a"},
			wantErr: ErrUnsupportedItemKind,
		},
		"nil resource": {
			value:   (*Resource)(nil),
			wantErr: ErrUnsupportedValueKind,
		},
		"empty nest": {
			value:   Nest(nil),
			wantErr: ErrUnsupportedValueKind,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewResource("R")
			err := r.SetAttribute("X", test.value)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("wrong error %v; want %v", err, test.wantErr)
				}
				if n := len(r.Attributes()); n != 0 {
					t.Errorf("failed SetAttribute left %d attributes behind", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := renderElement(t, r)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong result (-want +got):\n%s", diff)
			}
		})
	}
}
