package cfnyaml

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/cfnjson"
)

func TestMarshalScalars(t *testing.T) {
	doc := cfn.NewObject()
	doc.Set("AWSTemplateFormatVersion", "2010-09-09")
	doc.Set("Flag", "true")
	doc.Set("Count", 3)

	got, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := "AWSTemplateFormatVersion: \"2010-09-09\"\nFlag: \"true\"\nCount: 3\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("wrong output (-want +got):\n%s", diff)
	}
}

func TestMarshalTemplateMatchesJSON(t *testing.T) {
	vpc := cfn.NewResource("VPC").Type("AWS::EC2::VPC").Properties(
		cfn.NewScalar("CidrBlock", cfn.Lit(cfn.FindInMap("GroupToCIDR", "VPC", "CIDR"))),
		cfn.NewScalar("Tags", cfn.Seq(cfn.Pairs{cfn.P("Key", "Name"), cfn.P("Value", "main")}.Object())),
	)
	tmpl := cfn.NewTemplate("Sample").
		AddOutput(cfn.NewOutput("VpcId").Value(cfn.RefTo(vpc))).
		AddResource(vpc).
		AddResource(cfn.NewResource("Script").Type("Custom::Script").Properties(
			cfn.NewScalar("UserData", cfn.Lit(cfn.Base64(cfn.Join("", "#!/bin/sh\n", "echo -1\n")))),
		))
	tmpl.Section(cfn.Mappings)

	yamlSrc, err := MarshalTemplate(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	jsonSrc, err := cfnjson.MarshalTemplate(tmpl)
	if err != nil {
		t.Fatal(err)
	}

	var fromYAML, fromJSON map[string]interface{}
	if err := yaml.Unmarshal(yamlSrc, &fromYAML); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, yamlSrc)
	}
	if err := json.Unmarshal(jsonSrc, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("YAML and JSON documents differ (-json +yaml):\n%s", diff)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(yamlSrc, &root); err != nil {
		t.Fatal(err)
	}
	var keys []string
	mapping := root.Content[0]
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	want := []string{"AWSTemplateFormatVersion", "Description", "Outputs", "Resources", "Mappings"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("wrong key order (-want +got):\n%s", diff)
	}
}
