package cfn

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAttributeRender(t *testing.T) {
	tests := map[string]struct {
		attr Attribute
		want string
	}{
		"literal string": {
			NewScalar("InstanceTenancy", Str("default")),
			`{"InstanceTenancy":"default"}`,
		},
		"literal number": {
			NewScalar("Port", Lit(443)),
			`{"Port":443}`,
		},
		"literal intrinsic": {
			NewScalar("CidrBlock", Lit(FindInMap("GroupToCIDR", "VPC", "CIDR"))),
			`{"CidrBlock":{"Fn::FindInMap":["GroupToCIDR","VPC","CIDR"]}}`,
		},
		"nil value": {
			NewScalar("Nothing", nil),
			`{"Nothing":null}`,
		},
		"sequence": {
			NewScalar("SecurityGroupIngress", Seq(
				Pairs{P("IpProtocol", "tcp"), P("FromPort", "0")}.Object(),
				Pairs{P("IpProtocol", "icmp"), P("FromPort", "-1")}.Object(),
			)),
			`{"SecurityGroupIngress":[{"IpProtocol":"tcp","FromPort":"0"},{"IpProtocol":"icmp","FromPort":"-1"}]}`,
		},
		"empty sequence": {
			NewScalar("Empty", Seq()),
			`{"Empty":[]}`,
		},
		"nested attribute": {
			NewScalar("Outer", Nest(NewScalar("Inner", Str("v")))),
			`{"Outer":{"Inner":"v"}}`,
		},
		"empty nest": {
			NewScalar("Outer", Nest(nil)),
			`{"Outer":{}}`,
		},
		"doubly nested attribute": {
			NewScalar("A", Nest(NewScalar("B", Nest(NewScalar("C", RefTo(LogicalID("D"))))))),
			`{"A":{"B":{"C":{"Ref":"D"}}}}`,
		},
		"element reference": {
			NewScalar("VpcId", RefTo(NewResource("VPC"))),
			`{"VpcId":{"Ref":"VPC"}}`,
		},
		"multi-value map merges in order": {
			NewMultiValueMap("Tags",
				Pairs{P("Name", "a"), P("Env", "dev")},
				NewScalar("Name", Str("b")),
				NewMultiValueMap("Nested", Pairs{P("K", "V")}),
			),
			`{"Tags":{"Name":"b","Env":"dev","Nested":{"K":"V"}}}`,
		},
		"empty multi-value map": {
			NewMultiValueMap("Properties"),
			`{"Properties":{}}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			parent := NewObject()
			test.attr.Render(parent)
			got := mustJSON(t, parent)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRefAndRefToAgree(t *testing.T) {
	x := NewResource("resourceX")

	viaRef := NewObject()
	NewScalar("V", Lit(Ref(x))).Render(viaRef)

	viaAttr := NewObject()
	NewScalar("V", RefTo(x)).Render(viaAttr)

	if diff := cmp.Diff(mustJSON(t, viaRef), mustJSON(t, viaAttr)); diff != "" {
		t.Errorf("Ref and RefTo disagree (-Ref +RefTo):\n%s", diff)
	}
	if got, want := mustJSON(t, viaRef), `{"V":{"Ref":"resourceX"}}`; got != want {
		t.Errorf("wrong result %s; want %s", got, want)
	}
}

// customAttr is an Attribute implemented outside of the set the package
// provides.
type customAttr struct{}

func (customAttr) Name() string { return "Custom" }

func (customAttr) Render(parent *Object) {
	parent.Set("Custom", "yes")
}

func TestItemOf(t *testing.T) {
	obj := NewObject()
	obj.Set("Z", 1)
	obj.Set("A", 2)

	tests := map[string]struct {
		value   interface{}
		want    string
		wantErr bool
	}{
		"pair":       {value: P("K", "V"), want: `{"M":{"K":"V"}}`},
		"pair slice": {value: []Pair{P("K", "V"), P("L", "W")}, want: `{"M":{"K":"V","L":"W"}}`},
		"object":     {value: obj, want: `{"M":{"Z":1,"A":2}}`},
		"map":        {value: map[string]interface{}{"Z": 1, "A": 2}, want: `{"M":{"A":2,"Z":1}}`},
		"attribute":  {value: NewScalar("K", Str("V")), want: `{"M":{"K":"V"}}`},
		"custom":     {value: customAttr{}, want: `{"M":{"Custom":"yes"}}`},
		"string":     {value: "nope", wantErr: true},
		"nil":        {value: nil, wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			item, err := ItemOf(test.value)
			if test.wantErr {
				if !errors.Is(err, ErrUnsupportedItemKind) {
					t.Fatalf("wrong error %v; want ErrUnsupportedItemKind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			parent := NewObject()
			NewMultiValueMap("M", item).Render(parent)
			if diff := cmp.Diff(test.want, mustJSON(t, parent)); diff != "" {
				t.Errorf("wrong result (-want +got):\n%s", diff)
			}
		})
	}
}
