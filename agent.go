package scout

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kratos/scout/tools"
	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/sync/errgroup"
)

// AgentOption is an option for configuring the Agent.
type AgentOption func(*agent)

// WithModel sets the model provider for the Agent.
func WithModel(model ModelProvider) AgentOption {
	return func(a *agent) {
		a.model = model
	}
}

// WithDescription sets the description for the Agent.
func WithDescription(description string) AgentOption {
	return func(a *agent) {
		a.description = description
	}
}

// WithInstruction sets the system instruction for the Agent.
func WithInstruction(instruction string) AgentOption {
	return func(a *agent) {
		a.instruction = instruction
	}
}

// WithOutputSchema constrains the Agent's final output to the given schema.
func WithOutputSchema(schema *jsonschema.Schema) AgentOption {
	return func(a *agent) {
		a.outputSchema = schema
	}
}

// WithTools sets the tools for the Agent.
func WithTools(tools ...*tools.Tool) AgentOption {
	return func(a *agent) {
		a.tools = tools
	}
}

// WithToolsResolver sets a tools resolver for the Agent.
// The resolver can dynamically provide tools from remote sources such as MCP servers.
func WithToolsResolver(r tools.Resolver) AgentOption {
	return func(a *agent) {
		a.toolsResolver = r
	}
}

// WithToolMiddleware wraps every tool handler of the Agent.
func WithToolMiddleware(ms ...tools.Middleware) AgentOption {
	return func(a *agent) {
		a.toolMiddlewares = ms
	}
}

// WithMiddleware sets the middleware for the Agent.
func WithMiddleware(ms ...Middleware) AgentOption {
	return func(a *agent) {
		a.middlewares = ms
	}
}

// WithMaxIterations sets the maximum number of iterations for the Agent.
// By default, it is set to 10.
func WithMaxIterations(n int) AgentOption {
	return func(a *agent) {
		a.maxIterations = n
	}
}

// WithModelOptions sets request-time options passed to every model call.
func WithModelOptions(opts ...ModelOption) AgentOption {
	return func(a *agent) {
		a.modelOptions = opts
	}
}

// agent runs a model in a loop, executing the tool calls it requests
// until the model produces a turn without tool calls.
type agent struct {
	name            string
	description     string
	instruction     string
	maxIterations   int
	model           ModelProvider
	modelOptions    []ModelOption
	outputSchema    *jsonschema.Schema
	middlewares     []Middleware
	tools           []*tools.Tool
	toolsResolver   tools.Resolver
	toolMiddlewares []tools.Middleware
}

// NewAgent creates a new Agent with the given name and options.
func NewAgent(name string, opts ...AgentOption) (Agent, error) {
	a := &agent{
		name:          name,
		maxIterations: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.model == nil {
		return nil, ErrModelProviderRequired
	}
	return a, nil
}

// Name returns the name of the Agent.
func (a *agent) Name() string {
	return a.name
}

// Description returns the description of the Agent.
func (a *agent) Description() string {
	return a.description
}

// resolveTools combines static tools with dynamically resolved tools.
func (a *agent) resolveTools(ctx context.Context) ([]*tools.Tool, error) {
	resolved := make([]*tools.Tool, 0, len(a.tools))
	resolved = append(resolved, a.tools...)
	if a.toolsResolver != nil {
		dynamic, err := a.toolsResolver.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, dynamic...)
	}
	return tools.Wrap(resolved, a.toolMiddlewares...), nil
}

// prepareInvocation resolves tools and applies the instruction.
func (a *agent) prepareInvocation(ctx context.Context, invocation *Invocation) error {
	resolved, err := a.resolveTools(ctx)
	if err != nil {
		return err
	}
	invocation.Model = a.model.Name()
	invocation.Tools = append(invocation.Tools, resolved...)
	if a.instruction != "" {
		invocation.Instruction = MergeParts(SystemMessage(a.instruction), invocation.Instruction)
	}
	return nil
}

// Run runs the agent for the invocation, yielding every turn.
func (a *agent) Run(ctx context.Context, invocation *Invocation) Generator[*Message, error] {
	return func(yield func(*Message, error) bool) {
		if err := a.prepareInvocation(ctx, invocation); err != nil {
			yield(nil, err)
			return
		}
		ctx = NewAgentContext(ctx, &agentContext{
			name:        a.name,
			description: a.description,
			model:       a.model.Name(),
		})
		handler := Handler(HandleFunc(func(ctx context.Context, invocation *Invocation) Generator[*Message, error] {
			req := &ModelRequest{
				Model:        invocation.Model,
				Tools:        invocation.Tools,
				Instruction:  invocation.Instruction,
				OutputSchema: a.outputSchema,
			}
			req.Messages = append(req.Messages, invocation.History...)
			if invocation.Message != nil {
				req.Messages = append(req.Messages, invocation.Message)
			}
			return a.handle(ctx, invocation, req)
		}))
		if len(a.middlewares) > 0 {
			handler = ChainMiddlewares(a.middlewares...)(handler)
		}
		for m, err := range handler.Handle(ctx, invocation) {
			if !yield(m, err) {
				break
			}
		}
	}
}

// storeSession records the turn in the invocation's session.
func (a *agent) storeSession(ctx context.Context, invocation *Invocation, message *Message) error {
	if invocation.Session == nil || message == nil || message.Status != StatusCompleted {
		return nil
	}
	message.Author = a.name
	message.InvocationID = invocation.ID
	return invocation.Session.Append(ctx, []*Message{message})
}

func (a *agent) handleTool(ctx context.Context, available []*tools.Tool, part ToolPart) (ToolPart, error) {
	for _, tool := range available {
		if tool.Name == part.Name {
			ctx = tools.NewCallContext(ctx, tools.Call{ID: part.ID, Name: part.Name})
			response, err := tool.Handle(ctx, part.Request)
			if err != nil {
				return part, err
			}
			part.Response = response
			return part, nil
		}
	}
	return part, fmt.Errorf("%w: %s", ErrToolNotFound, part.Name)
}

// executeTools executes the tool calls of a single turn concurrently.
func (a *agent) executeTools(ctx context.Context, available []*tools.Tool, message *Message) (*Message, error) {
	var m sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	for i, part := range message.Parts {
		v, ok := part.(ToolPart)
		if !ok {
			continue
		}
		eg.Go(func() error {
			part, err := a.handleTool(ctx, available, v)
			if err != nil {
				return err
			}
			m.Lock()
			message.Parts[i] = part
			m.Unlock()
			return nil
		})
	}
	return message, eg.Wait()
}

// handle drives the model/tool loop.
func (a *agent) handle(ctx context.Context, invocation *Invocation, req *ModelRequest) Generator[*Message, error] {
	return func(yield func(*Message, error) bool) {
		if err := a.storeSession(ctx, invocation, invocation.Message); err != nil {
			yield(nil, err)
			return
		}
		for i := 0; i < a.maxIterations; i++ {
			res, err := a.model.Generate(ctx, req, a.modelOptions...)
			if err != nil {
				yield(nil, err)
				return
			}
			if res == nil || res.Message == nil {
				yield(nil, ErrNoFinalResponse)
				return
			}
			if res.Message.Role != RoleTool {
				if err := a.storeSession(ctx, invocation, res.Message); err != nil {
					yield(nil, err)
					return
				}
				yield(res.Message, nil)
				return
			}
			toolMessage, err := a.executeTools(ctx, invocation.Tools, res.Message)
			if err != nil {
				yield(nil, err)
				return
			}
			if err := a.storeSession(ctx, invocation, toolMessage); err != nil {
				yield(nil, err)
				return
			}
			if !yield(toolMessage, nil) {
				return
			}
			// Append the tool response to the message history for the next iteration
			req.Messages = append(req.Messages, toolMessage)
		}
		yield(nil, ErrMaxIterationsExceeded)
	}
}
