package binding

// Kind tags the variant of a Binding.
type Kind int

const (
	// Injection is a binding from an inject-annotated constructor.
	Injection Kind = iota

	// AssistedInjection is an inject constructor with assisted parameters.
	AssistedInjection

	// AssistedFactory is the factory type for an assisted injection.
	AssistedFactory

	// Provision is a provides-method binding.
	Provision

	// Production is a produces-method binding (asynchronous generated code).
	Production

	// Component binds the component type itself.
	Component

	// ComponentDependency binds an instance handed to the component builder.
	ComponentDependency

	// ComponentProvision is a provision method on a component dependency.
	ComponentProvision

	// ComponentProduction is a production method on a component dependency.
	ComponentProduction

	// BoundInstance is an instance bound through the component creator.
	BoundInstance

	// SubcomponentCreator binds a child component's creator.
	SubcomponentCreator

	// Delegate is a binds-declaration aliasing one key to another.
	Delegate

	// Optional is a synthesized present/absent optional binding.
	Optional

	// MultiboundSet is a synthesized aggregation of set contributions.
	MultiboundSet

	// MultiboundMap is a synthesized aggregation of map contributions.
	MultiboundMap

	// MembersInjector binds the injector value for a type's members.
	MembersInjector

	// MembersInjection injects the fields of an existing instance.
	MembersInjection
)

var kindNames = [...]string{
	Injection:           "injection",
	AssistedInjection:   "assisted injection",
	AssistedFactory:     "assisted factory",
	Provision:           "provision",
	Production:          "production",
	Component:           "component",
	ComponentDependency: "component dependency",
	ComponentProvision:  "component provision",
	ComponentProduction: "component production",
	BoundInstance:       "bound instance",
	SubcomponentCreator: "subcomponent creator",
	Delegate:            "delegate",
	Optional:            "optional",
	MultiboundSet:       "multibound set",
	MultiboundMap:       "multibound map",
	MembersInjector:     "members injector",
	MembersInjection:    "members injection",
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsMultibound reports whether the kind is a synthesized collection binding.
func (k Kind) IsMultibound() bool {
	return k == MultiboundSet || k == MultiboundMap
}
