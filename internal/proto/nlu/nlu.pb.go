// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: nlu.proto

package nlu

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type ClassifyRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Utterance     string                 `protobuf:"bytes,1,opt,name=utterance,proto3" json:"utterance,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ClassifyRequest) Reset() {
	*x = ClassifyRequest{}
	mi := &file_nlu_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ClassifyRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ClassifyRequest) ProtoMessage() {}

func (x *ClassifyRequest) ProtoReflect() protoreflect.Message {
	mi := &file_nlu_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ClassifyRequest.ProtoReflect.Descriptor instead.
func (*ClassifyRequest) Descriptor() ([]byte, []int) {
	return file_nlu_proto_rawDescGZIP(), []int{0}
}

func (x *ClassifyRequest) GetUtterance() string {
	if x != nil {
		return x.Utterance
	}
	return ""
}

type EntitySpan struct {
	state protoimpl.MessageState `protogen:"open.v1"`
	// The model's label for the span, e.g. ACCOUNT_NUMBER, PERSON, MONEY.
	Label         string `protobuf:"bytes,1,opt,name=label,proto3" json:"label,omitempty"`
	Text          string `protobuf:"bytes,2,opt,name=text,proto3" json:"text,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *EntitySpan) Reset() {
	*x = EntitySpan{}
	mi := &file_nlu_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *EntitySpan) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*EntitySpan) ProtoMessage() {}

func (x *EntitySpan) ProtoReflect() protoreflect.Message {
	mi := &file_nlu_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use EntitySpan.ProtoReflect.Descriptor instead.
func (*EntitySpan) Descriptor() ([]byte, []int) {
	return file_nlu_proto_rawDescGZIP(), []int{1}
}

func (x *EntitySpan) GetLabel() string {
	if x != nil {
		return x.Label
	}
	return ""
}

func (x *EntitySpan) GetText() string {
	if x != nil {
		return x.Text
	}
	return ""
}

type ClassifyResponse struct {
	state protoimpl.MessageState `protogen:"open.v1"`
	// Per-intent confidence scores. Empty when the model has no text
	// categorizer output for the utterance.
	IntentScores  map[string]float64 `protobuf:"bytes,1,rep,name=intent_scores,json=intentScores,proto3" json:"intent_scores,omitempty" protobuf_key:"bytes,1,opt,name=key" protobuf_val:"fixed64,2,opt,name=value"`
	Entities      []*EntitySpan      `protobuf:"bytes,2,rep,name=entities,proto3" json:"entities,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *ClassifyResponse) Reset() {
	*x = ClassifyResponse{}
	mi := &file_nlu_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *ClassifyResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*ClassifyResponse) ProtoMessage() {}

func (x *ClassifyResponse) ProtoReflect() protoreflect.Message {
	mi := &file_nlu_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use ClassifyResponse.ProtoReflect.Descriptor instead.
func (*ClassifyResponse) Descriptor() ([]byte, []int) {
	return file_nlu_proto_rawDescGZIP(), []int{2}
}

func (x *ClassifyResponse) GetIntentScores() map[string]float64 {
	if x != nil {
		return x.IntentScores
	}
	return nil
}

func (x *ClassifyResponse) GetEntities() []*EntitySpan {
	if x != nil {
		return x.Entities
	}
	return nil
}

type HealthRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *HealthRequest) Reset() {
	*x = HealthRequest{}
	mi := &file_nlu_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *HealthRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*HealthRequest) ProtoMessage() {}

func (x *HealthRequest) ProtoReflect() protoreflect.Message {
	mi := &file_nlu_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use HealthRequest.ProtoReflect.Descriptor instead.
func (*HealthRequest) Descriptor() ([]byte, []int) {
	return file_nlu_proto_rawDescGZIP(), []int{3}
}

type HealthResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Ok            bool                   `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
	Status        string                 `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"`
	ModelVersion  string                 `protobuf:"bytes,3,opt,name=model_version,json=modelVersion,proto3" json:"model_version,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *HealthResponse) Reset() {
	*x = HealthResponse{}
	mi := &file_nlu_proto_msgTypes[4]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *HealthResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*HealthResponse) ProtoMessage() {}

func (x *HealthResponse) ProtoReflect() protoreflect.Message {
	mi := &file_nlu_proto_msgTypes[4]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use HealthResponse.ProtoReflect.Descriptor instead.
func (*HealthResponse) Descriptor() ([]byte, []int) {
	return file_nlu_proto_rawDescGZIP(), []int{4}
}

func (x *HealthResponse) GetOk() bool {
	if x != nil {
		return x.Ok
	}
	return false
}

func (x *HealthResponse) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

func (x *HealthResponse) GetModelVersion() string {
	if x != nil {
		return x.ModelVersion
	}
	return ""
}

var File_nlu_proto protoreflect.FileDescriptor

const file_nlu_proto_rawDesc = "" +
	"\n" +
	"\tnlu.proto\x12\x03nlu\"/\n" +
	"\x0fClassifyRequest\x12\x1c\n" +
	"\tutterance\x18\x01 \x01(\tR\tutterance\"6\n" +
	"\n" +
	"EntitySpan\x12\x14\n" +
	"\x05label\x18\x01 \x01(\tR\x05label\x12\x12\n" +
	"\x04text\x18\x02 \x01(\tR\x04text\"\xce\x01\n" +
	"\x10ClassifyResponse\x12L\n" +
	"\rintent_scores\x18\x01 \x03(\v2'.nlu.ClassifyResponse.IntentScoresEntryR\fintentScores\x12+\n" +
	"\bentities\x18\x02 \x03(\v2\x0f.nlu.EntitySpanR\bentities\x1a?\n" +
	"\x11IntentScoresEntry\x12\x10\n" +
	"\x03key\x18\x01 \x01(\tR\x03key\x12\x14\n" +
	"\x05value\x18\x02 \x01(\x01R\x05value:\x028\x01\"\x0f\n" +
	"\rHealthRequest\"]\n" +
	"\x0eHealthResponse\x12\x0e\n" +
	"\x02ok\x18\x01 \x01(\bR\x02ok\x12\x16\n" +
	"\x06status\x18\x02 \x01(\tR\x06status\x12#\n" +
	"\rmodel_version\x18\x03 \x01(\tR\fmodelVersion2x\n" +
	"\n" +
	"NluService\x127\n" +
	"\bClassify\x12\x14.nlu.ClassifyRequest\x1a\x15.nlu.ClassifyResponse\x121\n" +
	"\x06Health\x12\x12.nlu.HealthRequest\x1a\x13.nlu.HealthResponseB0Z.github.com/srt-bank/srtbank/internal/proto/nlub\x06proto3"

var (
	file_nlu_proto_rawDescOnce sync.Once
	file_nlu_proto_rawDescData []byte
)

func file_nlu_proto_rawDescGZIP() []byte {
	file_nlu_proto_rawDescOnce.Do(func() {
		file_nlu_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_nlu_proto_rawDesc), len(file_nlu_proto_rawDesc)))
	})
	return file_nlu_proto_rawDescData
}

var file_nlu_proto_msgTypes = make([]protoimpl.MessageInfo, 6)
var file_nlu_proto_goTypes = []any{
	(*ClassifyRequest)(nil),  // 0: nlu.ClassifyRequest
	(*EntitySpan)(nil),       // 1: nlu.EntitySpan
	(*ClassifyResponse)(nil), // 2: nlu.ClassifyResponse
	(*HealthRequest)(nil),    // 3: nlu.HealthRequest
	(*HealthResponse)(nil),   // 4: nlu.HealthResponse
	nil,                      // 5: nlu.ClassifyResponse.IntentScoresEntry
}
var file_nlu_proto_depIdxs = []int32{
	5, // 0: nlu.ClassifyResponse.intent_scores:type_name -> nlu.ClassifyResponse.IntentScoresEntry
	1, // 1: nlu.ClassifyResponse.entities:type_name -> nlu.EntitySpan
	0, // 2: nlu.NluService.Classify:input_type -> nlu.ClassifyRequest
	3, // 3: nlu.NluService.Health:input_type -> nlu.HealthRequest
	2, // 4: nlu.NluService.Classify:output_type -> nlu.ClassifyResponse
	4, // 5: nlu.NluService.Health:output_type -> nlu.HealthResponse
	4, // [4:6] is the sub-list for method output_type
	2, // [2:4] is the sub-list for method input_type
	2, // [2:2] is the sub-list for extension type_name
	2, // [2:2] is the sub-list for extension extendee
	0, // [0:2] is the sub-list for field type_name
}

func init() { file_nlu_proto_init() }
func file_nlu_proto_init() {
	if File_nlu_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_nlu_proto_rawDesc), len(file_nlu_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   6,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_nlu_proto_goTypes,
		DependencyIndexes: file_nlu_proto_depIdxs,
		MessageInfos:      file_nlu_proto_msgTypes,
	}.Build()
	File_nlu_proto = out.File
	file_nlu_proto_goTypes = nil
	file_nlu_proto_depIdxs = nil
}
