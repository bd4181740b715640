// Package sample registers a built-in vaporfile named "sample", whose
// generate task builds a VPC with public and private subnets.
package sample

import (
	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/plugin"
)

// Name is the vaporfile name the sample is registered under.
const Name = "sample"

func init() {
	plugin.RegisterTask(Name, plugin.DefaultTask, func() (*cfn.Template, error) {
		return VPC(), nil
	})
}

func cidrOf(group string) cfn.Value {
	return cfn.Lit(cfn.FindInMap("GroupToCIDR", group, "CIDR"))
}

func firstAZ() cfn.Value {
	return cfn.Lit(cfn.Select("0", cfn.GetAZs("")))
}

// VPC builds the sample template.
func VPC() *cfn.Template {
	t := cfn.NewTemplate("Sample Template")

	t.AddParameter(cfn.NewParameter("KeyName").
		Description("Name of an existing EC2 KeyPair to enable SSH access to the server").
		Type("String"))

	t.AddMapping(cfn.NewMapping("GroupToCIDR").
		Define("VPC", cfn.P("CIDR", "10.104.0.0/16")).
		Define("ApiServerSubnet", cfn.P("CIDR", "10.104.128.0/24")).
		Define("ComputingServerSubnet", cfn.P("CIDR", "10.104.144.0/20")).
		Define("MongoDBSubnet", cfn.P("CIDR", "10.104.129.0/24")))

	vpc := cfn.NewResource("VPC").Type("AWS::EC2::VPC").Properties(
		cfn.NewScalar("CidrBlock", cidrOf("VPC")),
		cfn.NewScalar("InstanceTenancy", cfn.Str("default")),
	)
	t.AddResource(vpc)

	igw := cfn.NewResource("InternetGateway").Type("AWS::EC2::InternetGateway")
	t.AddResource(igw)

	attachIGW := cfn.NewResource("AttachInternetGateway").Type("AWS::EC2::VPCGatewayAttachment").Properties(
		cfn.NewScalar("VpcId", cfn.RefTo(vpc)),
		cfn.NewScalar("InternetGatewayId", cfn.RefTo(igw)),
	)
	t.AddResource(attachIGW)

	t.AddResource(cfn.NewResource("NatGatewayEIP").Type("AWS::EC2::EIP").DependsOn(attachIGW).Properties(
		cfn.NewScalar("Domain", cfn.Str("vpc")),
	))

	natGW := cfn.NewResource("NatGateway").Type("AWS::EC2::NatGateway").Properties(
		cfn.NewScalar("AllocationId", cfn.Lit(cfn.GetAtt("NatGatewayEIP", "AllocationId"))),
	)
	t.AddResource(natGW)

	publicRouteTable := cfn.NewResource("PublicRouteTable").Type("AWS::EC2::RouteTable").DependsOn(attachIGW).Properties(
		cfn.NewScalar("VpcId", cfn.RefTo(vpc)),
	)
	t.AddResource(publicRouteTable)

	privateRouteTable := cfn.NewResource("PrivateRouteTable").Type("AWS::EC2::RouteTable").DependsOn(attachIGW).Properties(
		cfn.NewScalar("VpcId", cfn.RefTo(vpc)),
	)
	t.AddResource(privateRouteTable)

	t.AddResource(cfn.NewResource("PublicRoute").Type("AWS::EC2::Route").DependsOn(attachIGW).Properties(
		cfn.NewScalar("RouteTableId", cfn.RefTo(publicRouteTable)),
		cfn.NewScalar("DestinationCidrBlock", cfn.Str("0.0.0.0/0")),
		cfn.NewScalar("GatewayId", cfn.RefTo(igw)),
	))

	t.AddResource(cfn.NewResource("PrivateRoute").Type("AWS::EC2::Route").DependsOn(attachIGW).Properties(
		cfn.NewScalar("RouteTableId", cfn.RefTo(privateRouteTable)),
		cfn.NewScalar("DestinationCidrBlock", cfn.Str("0.0.0.0/0")),
		cfn.NewScalar("GatewayId", cfn.RefTo(natGW)),
	))

	subnet := func(name, mapPublicIP string) *cfn.Resource {
		r := cfn.NewResource(name).Type("AWS::EC2::Subnet").DependsOn(attachIGW).Properties(
			cfn.NewScalar("VpcId", cfn.RefTo(vpc)),
			cfn.NewScalar("AvailabilityZone", firstAZ()),
			cfn.NewScalar("CidrBlock", cidrOf(name)),
			cfn.NewScalar("MapPublicIpOnLaunch", cfn.Str(mapPublicIP)),
		)
		t.AddResource(r)
		return r
	}

	apiServerSubnet := subnet("ApiServerSubnet", "true")
	natGW.Property(cfn.NewScalar("SubnetId", cfn.RefTo(apiServerSubnet)))
	computingServerSubnet := subnet("ComputingServerSubnet", "false")
	mongoDBSubnet := subnet("MongoDBSubnet", "false")

	associate := func(subnet, routeTable *cfn.Resource) {
		t.AddResource(cfn.NewResource(subnet.Name()+"RouteTableAssociation").Type("AWS::EC2::SubnetRouteTableAssociation").Properties(
			cfn.NewScalar("SubnetId", cfn.RefTo(subnet)),
			cfn.NewScalar("RouteTableId", cfn.RefTo(routeTable)),
		))
	}
	associate(apiServerSubnet, publicRouteTable)
	associate(computingServerSubnet, privateRouteTable)
	associate(mongoDBSubnet, privateRouteTable)

	ingress := func(protocol, from, to string) *cfn.Object {
		return cfn.Pairs{
			cfn.P("IpProtocol", protocol),
			cfn.P("FromPort", from),
			cfn.P("ToPort", to),
			cfn.P("CidrIp", cfn.FindInMap("GroupToCIDR", "VPC", "CIDR")),
		}.Object()
	}
	securityGroup := cfn.NewResource("VPCDefaultSecurityGroup").Type("AWS::EC2::SecurityGroup").Properties(
		cfn.NewScalar("VpcId", cfn.RefTo(vpc)),
		cfn.NewScalar("GroupDescription", cfn.Str("Allow all communications in VPC")),
		cfn.NewScalar("SecurityGroupIngress", cfn.Seq(
			ingress("tcp", "0", "65535"),
			ingress("udp", "0", "65535"),
			ingress("icmp", "-1", "-1"),
		)),
	)
	t.AddResource(securityGroup)

	for _, target := range []*cfn.Resource{vpc, apiServerSubnet, computingServerSubnet, mongoDBSubnet, securityGroup} {
		name := target.Name()
		if target == vpc {
			name = "VpcId"
		}
		t.AddOutput(cfn.NewOutput(name).Description("-").Value(cfn.RefTo(target)))
	}

	return t
}
